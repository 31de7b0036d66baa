// Package acl is the anti-corruption layer between the remote quote server
// and the domain.
//
// Remote payloads are decoded into unexported DTOs, validated, and only then
// turned into [domain.Quote] values. Transport failures and HTTP error
// statuses are mapped to domain errors by [MapHTTPError], so nothing outside
// this package sees an *http.Response or a remote field name.
//
// The remote is expected to serve a JSON array of records on the fetch path:
//
//	[{"id": 1, "text": "...", "category": "..."}]
//
// JSONPlaceholder-style servers that only offer "title" are accepted too;
// "title" is used when "text" is missing, and the configured default
// category fills in a missing "category".
package acl
