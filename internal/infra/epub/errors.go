package epub

import "errors"

// ErrInvalidArchive marks an input file that is not a readable EPUB:
// not a zip, no locatable OPF package, or an empty spine. Wrapped
// errors carry the specific cause.
var ErrInvalidArchive = errors.New("invalid epub archive")
