// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

/*
Package supervisor runs Respite's long-lived services under suture v4.

	respite
	├── data-layer
	│   ├── catalog-watch     (catalog.watch: true, CSV catalogs only)
	│   └── session-sweeper
	├── messaging-layer
	│   └── events consumer   (events.enabled: true)
	└── api-layer
	    └── http-server

Crashed services restart with backoff; each layer counts failures on its
own. Cancelling the context passed to Serve stops every service, waiting up
to TreeConfig.ShutdownTimeout for each. UnstoppedServiceReport names the
ones that did not return in time.

Supervisor events (start, stop, panic, backoff) are logged through
sutureslog, using logging.NewSlogLogger so they land in the same zerolog
stream as the rest of the server.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(sessions)
	tree.AddMessagingService(consumer)
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	return tree.Serve(ctx)
*/
package supervisor
