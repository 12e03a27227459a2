// Package fuzztests houses Go fuzz harnesses that push arbitrary bytes
// through the whole lint pipeline (normalize, parse, bind, check, noqa)
// for both frontends. A harness fails on rule faults, out-of-range spans
// and errors other than cancellation.
//
// Назначение: ловить паники правил и зависания парсера на произвольном вводе.
package fuzztests
