// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

/*
Package api exposes the personalization engine over HTTP with chi.

Every JSON response uses the APIResponse envelope:

	{"success": true, "data": {...}, "meta": {"request_id": "...", "timestamp": "..."}}
	{"success": false, "error": {"code": "VALIDATION_ERROR", "message": "..."}, "meta": {...}}

Routes (all under /api/v1 unless noted):

	GET    /health/live, /health/ready
	GET    /users
	DELETE /users/{userID}
	GET    /users/{userID}/profile[?email=]
	PATCH  /users/{userID}/preferences
	GET    /users/{userID}/history
	POST   /users/{userID}/searches | activities | views | bookmarks | likes | deep-dives | domains
	POST   /users/{userID}/recommendations
	GET    /users/{userID}/similar[?limit=]
	GET    /users/{userID}/context
	GET    /users/{userID}/refresh, POST /users/{userID}/refresh
	POST   /users/{userID}/sync
	GET    /weekly-mix, PUT /weekly-mix
	GET    /schedule/next-anchor
	GET    /metrics (root, Prometheus exposition)

Tracking endpoints answer 202 with the user's refresh status after the
event has been applied and persisted. Backend failures never surface as
HTTP errors; they show up as needs_update staying true.
*/
package api
