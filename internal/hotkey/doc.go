// Package hotkey binds volume profiles to key combinations.
//
// Manager keeps at most one binding per profile on top of a Registrar.
// Table is the in-process Registrar used by the console, where bound
// combinations are fired with the "press" command.
package hotkey
