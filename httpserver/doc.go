/*
Package httpserver implements the HTTP server of the land certificate registry.

It exposes issuance and metadata updates to the administrator and read access to
everyone. Administrator requests are authenticated with a request signature; the
recovered signer address is handed to the registry's access guard, which decides
whether the caller is the administrator.

# Registry API Endpoints

  - POST /api/admin/certificates - Issue a certificate
  - PUT /api/admin/certificates/{id} - Replace the metadata of a certificate
  - GET /api/certificates/{id} - Get certificate metadata
  - GET /api/certificates/{id}/descriptor - Get the attached descriptor
  - GET /api/certificates/{id}/account - Get the bound account
  - GET /livez - Liveness check
  - GET /readyz - Readiness check; fails while draining or while the metadata store is unreachable
  - GET /drain - Stop reporting ready so load balancers move traffic away
  - GET /undrain - Report ready again

Shutdown drains the server and waits out the configured drain period before the
listeners close.

# Error Mapping

  - interfaces.ErrNotAuthorized - 403 Forbidden
  - interfaces.ErrNotFound - 404 Not Found
  - interfaces.ErrAlreadyExists - 409 Conflict
  - interfaces.ErrBindingFailed - 502 Bad Gateway
  - missing or invalid signature - 401 Unauthorized
  - malformed request - 400 Bad Request

# Example Usage

	metricsSrv, _ := metrics.New(common.PackageName, ":9090")

	cfg := &httpserver.HTTPServerConfig{
		ListenAddr:               ":8080",
		MetricsAddr:              ":9090",
		Log:                      logger,
		DrainDuration:            30 * time.Second,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              5 * time.Second,
		WriteTimeout:             60 * time.Second,
	}

	handler := httpserver.NewHandler(landRegistry, logger)
	server, err := httpserver.New(cfg, handler, metricsSrv)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	server.RunInBackground()
	defer server.Shutdown()
*/
package httpserver
