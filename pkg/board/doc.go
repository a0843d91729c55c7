// Package board provides the post and feed service of the sulbao community
// back office.
//
// It exposes a single Service interface that orchestrates creation, update,
// retrieval and paginated listing of user-authored posts grouped by category,
// with optional tag filtering and file attachments. Persistence, author and
// category lookup, and blob storage are collaborators behind the Repository,
// UserDirectory, CategoryDirectory and BlobStore interfaces; implementations
// live under pkg/repo and pkg/storage.
//
// # Body and images
//
// A feed post stores its body as segments joined by BodySeparator. The nth
// segment is paired with the nth entry of Post.Images; a nil entry is a slot
// with no image. Tags are stored with a leading TagPrefix.
package board
