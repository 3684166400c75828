// Package models defines the persisted entities: accounts and the voicemails
// they own.
package models
