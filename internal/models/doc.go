// package models defines the persisted data model for the watchlist sync tool
package models
