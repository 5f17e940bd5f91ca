/*
Package dvid provides types, constants and functions that have no other
dependencies and can be used by all packages within dvidtools.
*/
package dvid
