// Package api holds black-box tests for a running folio backend.
//
// Bring the server up with a database and an admin token, then:
//
//	ADMIN_TOKEN=dev-token go test -tags=api ./tests/api/...
//
// API_BASE_URL points the suite at another host (default http://localhost:8080).
// Every message the suite submits is deleted again in TearDownSuite.
package api
