// package repositories provides the persistence layer for user links.
//
// LinkRepository handles CRUD operations, soft deletes, and sequence
// generation on top of the shared sqlite database.
package repositories
