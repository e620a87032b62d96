// Package adminapi implements the bearer-token REST client for the admin
// namespace (/admin/api). A 401 from any endpoint maps to ErrUnauthorized;
// callers clear the stored token and ask the operator to log in again.
package adminapi
