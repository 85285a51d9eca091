// Package form owns the create/edit dialog and the delete confirmation
// dialog.
//
// Each dialog is either closed or open with its payload, so an open edit
// dialog always carries a draft and an open delete dialog always names its
// target. Drafts are validated locally; nothing reaches the server while a
// field is invalid. A dialog closes only when the server confirms the write.
package form
