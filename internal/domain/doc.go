// Package domain holds the persistence-agnostic building blocks shared by every
// aggregate: value objects, entity identities, entities, root entities and the
// repository contract that storage adapters implement.
package domain
