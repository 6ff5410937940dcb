// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

/*
Package services provides suture.Service wrappers for Respite components.

Each wrapper translates a component's lifecycle into suture's context-aware
Serve pattern:

	type Service interface {
	    Serve(ctx context.Context) error
	}

Available services:

  - HTTPServerService: wraps *http.Server; ListenAndServe plus graceful
    Shutdown when the context ends.
  - CatalogWatchService: watches the catalog file with fsnotify and, after
    a quiet period, asks the engine to reload. A failed reload leaves the
    current snapshot in place.

Components that already implement Serve (events.Consumer and
api.SessionStore) are added to the tree directly.

Every service implements fmt.Stringer so suture logs name it.
*/
package services
