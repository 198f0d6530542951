// Package feed describes upstream orders as the dispatch engine reads them.
// Nothing in the engine writes back to an upstream ledger.
package feed
