// Package timezone pins every timestamp the service produces (booking approvals, ledger
// entries, statement names) to the zone configured by APP_TIMEZONE. The location is loaded once
// when the package is imported and defaults to UTC.
package timezone
