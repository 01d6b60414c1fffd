/*
Package streaming groups I/O helpers that keep slow sinks off the control
loop. The writer subpackage provides AsyncWriter, the buffered writer behind
file logging.
*/
package streaming
