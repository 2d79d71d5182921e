// Package services holds the coldvault client operations built on the
// archive service client: uploads, jobs (inventory and retrieval) and
// plain vault calls.
package services
