// Package store persists validated curriculum graphs.
//
// Two real backends exist: Neo4j, the primary graph store where learners
// traverse the curriculum, and MongoDB, a document mirror for deployments
// that want the curriculum queryable outside the graph. NullStore backs dry
// runs and tests.
//
// All backends share the same contract: Persist is transactional and
// idempotent, keyed on node ids and edge identity triples, and new nodes
// enter the 'locked' progression state without disturbing existing learner
// progress.
package store
