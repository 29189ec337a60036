// Command framecap renders a scene into an off-screen render target and
// captures its pixels into the current frame buffer.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
