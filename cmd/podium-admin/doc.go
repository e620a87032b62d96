// Command podium-admin manages the presentation backend: product CRUD, PDF
// upload and processing, generated content editing, users, analytics, and
// server settings.
package main
