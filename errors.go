/*
 * errors.go, part of goensemble.
 *
 * Copyright 2026 The goensemble developers
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package ensemble

import "fmt"

// Errorer is the interface for errors that all packages in this
// library implement. The Decorate method allows adding and retrieving
// info from the error without changing its type or wrapping it around
// something else. The decoration slice should contain a list of the
// functions in the calling stack, plus, for each function, any
// relevant information, or nothing.
type Errorer interface {
	Error() string
	Decorate(string) []string
	Critical() bool
}

// Error is the concrete error for the root package. Critical errors
// abort the operation that produced them; non-critical ones are
// per-item failures the batch operations recover from.
type Error struct {
	message  string
	deco     []string
	critical bool
}

// Error returns a string with an error message.
func (err Error) Error() string {
	return err.message
}

// Decorate adds the dec string to the decoration slice of strings of
// the error and returns the resulting slice. An empty dec only
// retrieves the current decorations.
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// Critical returns whether the error is critical or it can be ignored.
func (err Error) Critical() bool { return err.critical }

// errDecorate decorates err with the caller's name before returning
// it. Errors from outside the library are wrapped into a critical
// Error first.
func errDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	err2, ok := err.(Errorer)
	if !ok {
		return Error{err.Error(), []string{caller}, true}
	}
	err2.Decorate(caller)
	return err2
}

func errorf(critical bool, caller, format string, a ...interface{}) Error {
	return Error{fmt.Sprintf(format, a...), []string{caller}, critical}
}
