// Package photo turns one image file into a Record holding its capture time
// and GPS position.
//
// Missing metadata never fails an extraction: absent fields are filled with
// the Unknown* sentinels, a zero timestamp and NaN coordinates. Only files
// that cannot be opened or decoded produce a failed Result.
package photo
