package jlserve

import (
	"context"
	"flag"
	"fmt"

	"github.com/svishnu88/jlserve/pkg/buildcache"
	"github.com/svishnu88/jlserve/pkg/serverfx"
)

// Run is the standard command front-end for an app binary. args is
// os.Args[1:]; the first element selects the command:
//
//	serve [-listen addr] [-no-marker]   run the serving process (default)
//	build [-installer cmd]              run the deployment build workflow
//
// The app must already be declared on the default registry. serve blocks
// until shutdown; build returns once the completion marker is written.
func Run(args []string, opts ...serverfx.Option) error {
	cmd := "serve"
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "serve":
		fs := flag.NewFlagSet("serve", flag.ExitOnError)
		listen := fs.String("listen", ":8000", "listen address")
		noMarker := fs.Bool("no-marker", false, "serve without a completed build marker")
		if err := fs.Parse(args); err != nil {
			return err
		}
		sopts := append([]serverfx.Option{
			serverfx.WithDefaultListen(*listen),
			serverfx.WithBuildMarkerRequired(!*noMarker),
		}, opts...)
		Serve(sopts...)
		return nil

	case "build":
		fs := flag.NewFlagSet("build", flag.ExitOnError)
		installer := fs.String("installer", "uv", "requirements installer command; empty skips installation")
		if err := fs.Parse(args); err != nil {
			return err
		}
		var inst buildcache.Installer = buildcache.NopInstaller{}
		if *installer != "" {
			inst = buildcache.ExecInstaller{Command: *installer, Args: []string{"pip", "install"}}
		}
		return Build(context.Background(), inst)

	default:
		return fmt.Errorf("unknown command %q (want serve or build)", cmd)
	}
}
