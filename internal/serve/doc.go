// Package serve runs a local npm-compatible scoped registry for
// development.
//
// The server publishes a directory of packages in the layout the
// registry package's file:// source reads:
//
//	<root>/com.example.pkg/packument.json
//	<root>/com.example.pkg/com.example.pkg-1.0.0.tgz
//
// Routes:
//
//	GET /{package}              packument JSON
//	GET /{package}/-/{tarball}  tarball bytes
//	GET /healthz                liveness probe
//	GET /metrics                Prometheus metrics
//	GET /ws                     refresh hub WebSocket
//
// # Usage
//
//	srv, err := serve.NewServer("./registry")
//	if err != nil {
//	    return err
//	}
//	return srv.ListenAndServe(ctx, "localhost:4873")
//
// Publishing through Server.Publish notifies WebSocket clients that
// the package set changed.
package serve
