package export

import "errors"

// Sentinel kinds for export errors.
var (
	ErrEmptyPath  = errors.New("export path is empty")
	ErrNoEpisodes = errors.New("scenario has no episodes")
)
