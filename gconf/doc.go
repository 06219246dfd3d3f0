/*
Package gconf implements a configuration store intended to be used as a global,
in-database configuration.

Each extension stores a single configuration object under its package name.
The configuration is loaded from the genesis file ("conf" section) and can
later be patched by its owner with an update message.

Not being able to get a configuration value is a critical condition for the
application. Extensions return the load error and the transaction fails.
*/
package gconf
