package app

import (
	"context"

	"github.com/shoalaudio/shoal/internal/errs"
	"github.com/shoalaudio/shoal/internal/files"
	"github.com/shoalaudio/shoal/internal/frames"
)

// RetagTrack writes text frames to a file's tags, then pulls the change
// through the caches: the metadata cache re-reads the file and cached lists
// containing the track are dropped so tag-based sort orders re-resolve. An
// empty frame value removes the frame.
func (a *App) RetagTrack(ctx context.Context, path string, version files.TagVersion, values map[frames.ID]string) error {
	if err := a.Files.WriteTagFrames(ctx, path, version, values); err != nil {
		err = errs.Wrap(errs.FileSystem, err)
		a.Diag.ReportError(errs.OpTagWrite, err)
		return err
	}

	if err := a.Lists.RefreshTrack(ctx, path); err != nil {
		// The write landed; a failed re-read only leaves caches stale.
		a.Diag.ReportError(errs.OpTagWrite, errs.Wrap(errs.FileSystem, err))
	}

	a.Log.Debug().Str("path", path).Int("frames", len(values)).Msg("retagged track")
	return nil
}
