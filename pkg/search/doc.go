// Package search implements keyword search over a directory of JSON documents.
//
// # Overview
//
// There is no index. Every query lists the data directory, loads each
// document concurrently, walks its tree and keeps the documents whose
// matches score at or above the minimum. This is a deliberate trade: it is
// simple and always fresh, and is fine for tens of documents of a few MB
// each. The response cache in pkg/cache absorbs repeated queries. Beyond a
// few hundred documents a persistent index would be needed.
//
// # Matching
//
// String leaves match by substring, case-folded per rune unless the request
// is case sensitive. Every non-overlapping occurrence is reported as a rune
// offset span. Number and boolean leaves only match when their canonical text
// equals the term. Field paths join object keys with "."; array indices are
// not part of the path, so elements share their parent's path:
//
//	{"Taxonomy A": [{"Title": "Nurse"}]}   ->   field "Taxonomy A.Title"
//
// # Code Resolution
//
// A match on a title field is tagged with the taxonomy code of the same
// record. Schemas map a title key suffix to a code key suffix:
//
//	search.Schema{Kind: search.KindSOC, TitleSuffix: "SOC Title", CodeSuffix: "SOC Code"}
//
// # Scoring
//
//	score = min(1, sum(len(positions)) * runeLen(term) / 10)
//
// Documents below the minimum score (0.5 by default) are dropped. Within a
// document, matches resolving to the same code collapse to the first one.
//
// # HTTP
//
//	GET    /search?q=Nurse&fields=Taxonomy%20A.Title&page=1&per_page=10
//	GET    /search/suggestions?prefix=nu
//	GET    /search/cache/stats
//	DELETE /search/cache
package search
