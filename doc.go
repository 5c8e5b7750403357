// Package main provides the entry point for the starter-kit admin back office.
// It initializes and runs a web server using the Fiber framework that provides
// user and role management with fine-grained permissions, grouped application
// settings and login through external OAuth providers. The application uses
// gorm for data persistence.
package main
