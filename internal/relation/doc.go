// Package relation finds relation declarations in a schema source file and
// decides whether they reference one of the configured nullable foreign keys.
//
// A declaration has the shape
//
//	user: one(users, { fields: [posts.userId], references: [users.id] }),
//
// The Locator finds where such declarations start, including ones that were
// already commented out by an earlier run. The Matcher inspects the argument
// list of a located block.
package relation
