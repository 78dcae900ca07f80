// Package fsroute assembles a convention-based HTTP server.
//
// A routes directory is compiled into a route table (see pkg/router), the
// table is mounted on a chi router, and the result is wrapped with the
// ambient middleware chain: request IDs, panic recovery, security headers,
// CORS, tracing, metrics and the per-IP rate limiter. Static assets are
// served under /public from a directory or an S3 bucket.
//
// Usage:
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	app, err := fsroute.New(ctx, cfg, routes.Modules())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//	if err := app.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// routes.Modules is the registry written by `fsroute gen`.
package fsroute

// Version is the fsroute release, reported by `fsroute version`.
const Version = "0.1.0"

// NotFoundMessage is the body of the generic 404 response.
const NotFoundMessage = "Not found"
