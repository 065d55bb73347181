// Package policy decides who may act on posts and comments.
//
// Every check is a pure function of the acting identity and a snapshot of the
// resource. The actor is passed explicitly; a nil *Actor is a guest and never
// satisfies an ownership or admin check.
//
// Rules:
//   - anyone may view or list posts and comments, and anyone may comment
//   - creating a post requires a signed-in actor
//   - only the author may update or delete a post (admins get no bypass)
//   - admins or the author may update a comment
//   - admins, the author or the owner of the parent post may delete a comment
//   - restore and force delete are disabled for everyone
package policy
