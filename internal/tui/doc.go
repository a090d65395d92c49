// Package tui is the terminal front end of the study client.
//
// It shows one tab per collection, reads every list straight from the sync
// controllers and redraws whenever a controller signals a cache change.
// Mutations go through the controllers, so they are optimistic and survive
// being offline.
package tui
