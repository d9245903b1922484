package analyzer

import (
	"slices"
	"strings"
)

type suffixRule struct {
	from, to string
}

// Detachment rules per part of speech, in WordNet morphy order.
var detachment = map[POS][]suffixRule{
	Noun: {
		{"s", ""}, {"ses", "s"}, {"ves", "f"}, {"xes", "x"}, {"zes", "z"},
		{"ches", "ch"}, {"shes", "sh"}, {"men", "man"}, {"ies", "y"},
	},
	Verb: {
		{"s", ""}, {"ies", "y"}, {"es", "e"}, {"es", ""}, {"ed", "e"},
		{"ed", ""}, {"ing", "e"}, {"ing", ""},
	},
	Adjective: {
		{"er", ""}, {"est", ""}, {"er", "e"}, {"est", "e"}, {"ier", "y"}, {"iest", "y"},
	},
	Adverb: nil,
}

// Irregular forms checked before the detachment rules.
var irregular = map[POS]map[string]string{
	Verb: {
		"am": "be", "is": "be", "are": "be", "was": "be", "were": "be", "been": "be", "being": "be",
		"has": "have", "had": "have", "having": "have",
		"does": "do", "did": "do", "done": "do",
		"goes": "go", "went": "go", "gone": "go",
		"ran": "run", "running": "run", "runs": "run",
		"saw": "see", "seen": "see", "took": "take", "taken": "take", "gave": "give", "given": "give",
		"came": "come", "made": "make", "said": "say", "got": "get", "gotten": "get",
		"knew": "know", "known": "know", "thought": "think", "told": "tell", "found": "find",
		"felt": "feel", "left": "leave", "kept": "keep", "held": "hold", "brought": "bring",
		"began": "begin", "begun": "begin", "wrote": "write", "written": "write",
		"stood": "stand", "understood": "understand", "heard": "hear", "meant": "mean",
		"met": "meet", "paid": "pay", "sat": "sit", "spoke": "speak", "spoken": "speak",
		"lay": "lie", "lain": "lie", "led": "lead", "grew": "grow", "grown": "grow",
		"lost": "lose", "fell": "fall", "fallen": "fall", "sent": "send", "built": "build",
		"spent": "spend", "drew": "draw", "drawn": "draw", "broke": "break", "broken": "break",
		"chose": "choose", "chosen": "choose", "ate": "eat", "eaten": "eat", "drank": "drink",
		"drunk": "drink", "drove": "drive", "driven": "drive", "flew": "fly", "flown": "fly",
		"forgot": "forget", "forgotten": "forget", "froze": "freeze", "frozen": "freeze",
		"hid": "hide", "hidden": "hide", "rode": "ride", "ridden": "ride", "rang": "ring",
		"rung": "ring", "rose": "rise", "risen": "rise", "sang": "sing", "sung": "sing",
		"sank": "sink", "sunk": "sink", "slept": "sleep", "sold": "sell", "shook": "shake",
		"shaken": "shake", "shot": "shoot", "stole": "steal", "stolen": "steal", "struck": "strike",
		"swam": "swim", "swum": "swim", "taught": "teach", "caught": "catch", "bought": "buy",
		"fought": "fight", "sought": "seek", "threw": "throw", "thrown": "throw", "tore": "tear",
		"torn": "tear", "wore": "wear", "worn": "wear", "woke": "wake", "woken": "wake",
		"won": "win", "wound": "wind", "became": "become", "forgave": "forgive",
		"bit": "bite", "bitten": "bite", "blew": "blow", "blown": "blow", "bore": "bear",
		"borne": "bear", "bent": "bend", "bled": "bleed", "bred": "breed", "dealt": "deal",
		"dug": "dig", "dove": "dive", "dreamt": "dream", "fed": "feed", "fled": "flee",
		"flung": "fling", "forbade": "forbid", "ground": "grind", "hung": "hang", "knelt": "kneel",
		"leapt": "leap", "lent": "lend", "lit": "light", "slid": "slide", "slung": "sling",
		"smelt": "smell", "sped": "speed", "spun": "spin", "sprang": "spring", "stung": "sting",
		"stuck": "stick", "strode": "stride", "swept": "sweep", "swore": "swear", "sworn": "swear",
		"swung": "swing", "wept": "weep", "withdrew": "withdraw", "wrung": "wring",
		"should": "shall", "could": "can", "would": "will", "might": "may",
	},
	Noun: {
		"men": "man", "women": "woman", "children": "child", "feet": "foot", "teeth": "tooth",
		"mice": "mouse", "geese": "goose", "people": "person", "oxen": "ox", "lice": "louse",
		"wives": "wife", "knives": "knife", "lives": "life", "leaves": "leaf", "wolves": "wolf",
		"halves": "half", "shelves": "shelf", "thieves": "thief", "loaves": "loaf",
		"dice": "die", "criteria": "criterion", "phenomena": "phenomenon", "data": "datum",
	},
	Adjective: {
		"better": "good", "best": "good", "worse": "bad", "worst": "bad",
		"further": "far", "farther": "far", "furthest": "far", "farthest": "far",
		"more": "much", "most": "much", "less": "little", "least": "little",
		"elder": "old", "eldest": "old",
	},
	Adverb: {
		"better": "well", "best": "well", "worse": "badly", "worst": "badly",
	},
}

var allPOS = []POS{Noun, Verb, Adjective, Adverb}

// lemmatize resolves word (lowercase) under the given part of speech:
// irregular table, then detachment candidates found in the vocabulary, then
// the lemma dictionary, then the other parts of speech, and finally the word
// itself. A word the dictionary knows only as an inflection never stands as
// its own lemma.
func (a *Analyzer) lemmatize(word string, pos POS) string {
	if l, ok := a.morphy(word, pos); ok {
		return l
	}

	inVocab := a.lx.Vocab.Contains(word)
	if d := a.lx.Dict; d != nil {
		if !inVocab || pos == Verb {
			if l := d.Lemma(word); l != "" && l != word && a.lx.Vocab.Contains(l) {
				return l
			}
		}
		// Inflected forms under a wrong tag, such as "ran" tagged as a noun.
		if d.InDict(word) {
			if known := d.Lemmas(word); !slices.Contains(known, word) {
				for _, l := range known {
					if a.lx.Vocab.Contains(l) {
						return l
					}
				}
			}
		}
	}
	if inVocab {
		return word
	}

	for _, other := range allPOS {
		if other == pos {
			continue
		}
		if l, ok := a.morphy(word, other); ok {
			return l
		}
	}
	return word
}

// morphy returns a vocabulary base form reachable from word, other than
// word itself. Candidates are tried in rule order; when the lemma dictionary
// knows the word, only candidates it agrees with are accepted.
func (a *Analyzer) morphy(word string, pos POS) (string, bool) {
	if l, ok := irregular[pos][word]; ok {
		return l, true
	}

	var cands []string
	add := func(c string) {
		if c != "" && c != word && a.lx.Vocab.Contains(c) && !slices.Contains(cands, c) {
			cands = append(cands, c)
		}
	}
	for _, r := range detachment[pos] {
		stem, ok := strings.CutSuffix(word, r.from)
		if !ok || stem == "" {
			continue
		}
		add(stem + r.to)
		// stopped -> stop, bigger -> big
		if r.to == "" && len(stem) >= 3 && stem[len(stem)-1] == stem[len(stem)-2] && !isVowel(stem[len(stem)-1]) {
			add(stem[:len(stem)-1])
		}
	}
	if len(cands) == 0 {
		return "", false
	}

	if a.lx.Dict != nil && a.lx.Dict.InDict(word) {
		known := a.lx.Dict.Lemmas(word)
		for _, c := range cands {
			if slices.Contains(known, c) {
				return c, true
			}
		}
		return "", false
	}
	return cands[0], true
}

func isVowel(c byte) bool {
	return strings.IndexByte("aeiou", c) >= 0
}
