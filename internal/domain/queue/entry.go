// Package queue defines the wire form of reindex queue entries.
package queue

import "strings"

const sep = '|'

// Entry identifies a record waiting to be reindexed.
type Entry struct {
	ID      string
	Routing string
}

// Encode renders the entry as "id" or "id|routing", doubling any pipe inside either part.
func (e Entry) Encode() string {
	id := escape(e.ID)
	if e.Routing == "" {
		return id
	}
	return id + string(sep) + escape(e.Routing)
}

// Decode parses an encoded entry. A doubled pipe is a literal pipe; the first single pipe separates id
// from routing.
func Decode(s string) Entry {
	var (
		b     strings.Builder
		e     Entry
		found bool
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != sep || found {
			if c == sep && i+1 < len(s) && s[i+1] == sep {
				i++
			}
			b.WriteByte(c)
			continue
		}
		if i+1 < len(s) && s[i+1] == sep {
			b.WriteByte(sep)
			i++
			continue
		}
		e.ID = b.String()
		b.Reset()
		found = true
	}
	if found {
		e.Routing = b.String()
	} else {
		e.ID = b.String()
	}
	return e
}

// EncodeAll encodes entries in order.
func EncodeAll(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Encode()
	}
	return out
}

// DecodeAll decodes raw values in order.
func DecodeAll(raw []string) []Entry {
	out := make([]Entry, len(raw))
	for i, r := range raw {
		out[i] = Decode(r)
	}
	return out
}

func escape(s string) string {
	return strings.ReplaceAll(s, string(sep), string(sep)+string(sep))
}
