// Package user is the credential store for LockGuard lock owners.
//
// Each row of the users table pairs an identity (the root segment of every
// topic the owner's lock uses) with a six-character access code and an
// optional email address for intrusion alerts.
//
// Registration, login passwords and token issuance belong to the account
// service. This package reads what it writes and offers access-code
// rotation, nothing more.
//
// # Access codes
//
// Codes are short operational PINs compared in plain text by the access
// package. They are read from the database on every attempt and are never
// cached, so a rotation takes effect on the very next submission.
package user
