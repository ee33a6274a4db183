//go:build !ci
// +build !ci

package desktop

import "context"

// watchClipboard does not monitor the clipboard; it only blocks until ctx is
// cancelled.
func (d *Desktop) watchClipboard(ctx context.Context) {
	<-ctx.Done()
}
