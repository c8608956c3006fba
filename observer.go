/*
 * observer.go, part of goensemble.
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

import "log"

// Observer receives incremental progress and log events from the
// long-running operations (ensemble building, alignment export). It is
// a side channel only: nothing an Observer does affects return values.
type Observer interface {
	// Progress reports that item current of total is being processed.
	// key correlates all the progress calls of one operation.
	Progress(current, total int, message, key string)
	Info(message string)
	Warn(message string)
}

// logObserver writes every event to a standard logger.
type logObserver struct {
	l *log.Logger
}

// NewLogObserver returns an Observer writing to l, or to the default
// logger if l is nil.
func NewLogObserver(l *log.Logger) Observer {
	if l == nil {
		l = log.Default()
	}
	return &logObserver{l}
}

func (o *logObserver) Progress(current, total int, message, key string) {
	o.l.Printf("[%s] %d/%d %s", key, current, total, message)
}

func (o *logObserver) Info(message string) {
	o.l.Println(message)
}

func (o *logObserver) Warn(message string) {
	o.l.Println("WARNING:", message)
}

// silentObserver drops everything. It backs the nil-observer case so
// callers and internal code never need to check for nil.
type silentObserver struct{}

func (silentObserver) Progress(current, total int, message, key string) {}
func (silentObserver) Info(message string)                              {}
func (silentObserver) Warn(message string)                              {}

func orSilent(obs Observer) Observer {
	if obs == nil {
		return silentObserver{}
	}
	return obs
}
