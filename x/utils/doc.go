/*
Package utils contains decorators shared by every handler stack: atomic
savepoints, panic recovery, per transaction logging and action tagging.
*/
package utils
