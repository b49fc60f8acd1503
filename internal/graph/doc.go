// Package graph builds a similarity graph of works from crawl results.
//
// Two works are linked when they share commenters. The edge weight is
// either the Jaccard index of the two commenter sets or their overlap
// coefficient. The graph is written in Graphviz DOT format:
//
//	graph itch {
//		"a.itch.io/x" -- "b.itch.io/y"[weight=0.5]
//	}
//
// Commenters come from both sides of the crawl: a saved work contributes
// the author of every comment, and a saved author contributes themself to
// every game thread listed in their recent posts.
package graph
