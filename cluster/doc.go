/*Package cluster groups barcode pairs that are noisy copies of the same
  physical barcode.

  Two barcode pairs are candidates for the same barcode if they land in the
  same bucket of at least one LSH template table (see package lsh). The
  candidate relation is the edge set of an undirected graph over nodes,
  and the clusters are its connected components.

  Nodes:

  With Opts.CollapseDuplicates set, reads carrying identical barcode pairs
  are collapsed into one node before indexing, and the node remembers its
  reads. Otherwise every read is its own node. Either way each Cluster lists
  its nodes and the reads behind them, so the clusters partition the input
  reads exactly.

  Implementation:

  Template tables are built in parallel (one task per template). A single
  reducer folds each finished table into a union-find forest: every bucket
  with k >= 2 members costs k-1 unions, and no pairwise edges are ever
  materialized, so a hub bucket of a hundred thousand reads costs the same
  as a hundred thousand small ones. Find is iterative with path halving and
  union is by size, over flat parent/size arrays.

  BuildAdjacency materializes the explicit neighbour sets as roaring
  bitmaps, one per node. It is not used by Find; it exists for callers that
  need degrees, densities, or neighbourhood queries.
*/
package cluster
