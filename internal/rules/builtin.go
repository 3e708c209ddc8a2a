package rules

import (
	"github.com/starford/fitch/internal/sentence"
)

func pat(s string) *sentence.Sentence {
	p, err := sentence.ParsePattern(s)
	if err != nil {
		panic(err)
	}
	return p
}

func line(s string) PremiseSpec { return PremiseSpec{Line: pat(s)} }

func sub(assumption, result string) PremiseSpec {
	return PremiseSpec{Assumption: pat(assumption), Result: pat(result)}
}

func strict(result string) PremiseSpec { return PremiseSpec{Result: pat(result), Strict: true} }

func form(conclusion string, premises ...PremiseSpec) Form {
	return Form{Premises: premises, Conclusion: pat(conclusion)}
}

func open(f Form, metas ...string) Form {
	f.Open = metas
	return f
}

func builtin() []*Definition {
	return []*Definition{
		{
			ID: Premise, Symbol: "PR", Ruleset: Core,
			Aliases:     []string{"Pr", "Assumption", "AS"},
			Description: "premise or subproof assumption",
		},
		{
			ID: Placeholder, Symbol: "?", Ruleset: Core,
			Aliases:     []string{"??", "TODO"},
			Description: "unfinished step; accepted but reported",
		},

		// Basic truth-functional rules.
		{
			ID: Reiteration, Symbol: "R", Ruleset: TFLBasic,
			Aliases: []string{"Reit"},
			Forms:   []Form{form("$a", line("$a"))},
		},
		{
			ID: AndIntro, Symbol: "∧I", Ruleset: TFLBasic,
			Aliases:   []string{"&I", "^I", "·I", "*I"},
			Forms:     []Form{form("$a ∧ $b", line("$a"), line("$b"))},
			Unordered: true,
		},
		{
			ID: AndElim, Symbol: "∧E", Ruleset: TFLBasic,
			Aliases: []string{"&E", "^E", "·E", "*E"},
			Forms: []Form{
				form("$a", line("$a ∧ $b")),
				form("$b", line("$a ∧ $b")),
			},
		},
		{
			ID: OrIntro, Symbol: "∨I", Ruleset: TFLBasic,
			Aliases: []string{"vI", "|I"},
			Forms: []Form{
				open(form("$a ∨ $b", line("$a")), "b"),
				open(form("$b ∨ $a", line("$a")), "b"),
			},
		},
		{
			ID: OrElim, Symbol: "∨E", Ruleset: TFLBasic,
			Aliases:   []string{"vE", "|E"},
			Forms:     []Form{form("$c", line("$a ∨ $b"), sub("$a", "$c"), sub("$b", "$c"))},
			Unordered: true,
		},
		{
			ID: ConditionalIntro, Symbol: "→I", Ruleset: TFLBasic,
			Aliases: []string{"->I", ">I", "⊃I", "⇒I"},
			Forms:   []Form{form("$a → $b", sub("$a", "$b"))},
		},
		{
			ID: ConditionalElim, Symbol: "→E", Ruleset: TFLBasic,
			Aliases:   []string{"->E", ">E", "⊃E", "⇒E", "MP"},
			Forms:     []Form{form("$b", line("$a → $b"), line("$a"))},
			Unordered: true,
		},
		{
			ID: BiconditionalIntro, Symbol: "↔I", Ruleset: TFLBasic,
			Aliases:     []string{"<->I", "≡I"},
			Forms:       []Form{form("$a ↔ $b", sub("$a", "$b"), sub("$b", "$a"))},
			Unordered:   true,
			Equivalence: Commutative,
		},
		{
			ID: BiconditionalElim, Symbol: "↔E", Ruleset: TFLBasic,
			Aliases: []string{"<->E", "≡E"},
			Forms: []Form{
				form("$b", line("$a ↔ $b"), line("$a")),
				form("$a", line("$a ↔ $b"), line("$b")),
			},
			Unordered: true,
		},
		{
			ID: NegIntro, Symbol: "¬I", Ruleset: TFLBasic,
			Aliases: []string{"~I", "-I", "∼I"},
			Forms:   []Form{form("¬$a", sub("$a", "⊥"))},
		},
		{
			ID: NegElim, Symbol: "¬E", Ruleset: TFLBasic,
			Aliases:   []string{"~E", "-E", "∼E"},
			Forms:     []Form{form("⊥", line("$a"), line("¬$a"))},
			Unordered: true,
		},
		{
			ID: IndirectProof, Symbol: "IP", Ruleset: TFLBasic,
			Forms: []Form{form("$a", sub("¬$a", "⊥"))},
		},
		{
			ID: Explosion, Symbol: "X", Ruleset: TFLBasic,
			Aliases: []string{"⊥E", "#E", "EFQ"},
			Forms:   []Form{open(form("$a", line("⊥")), "a")},
		},

		// Derived truth-functional rules.
		{
			ID: DisjunctiveSyllogism, Symbol: "DS", Ruleset: TFLDerived,
			Forms: []Form{
				form("$b", line("$a ∨ $b"), line("¬$a")),
				form("$a", line("$a ∨ $b"), line("¬$b")),
			},
			Unordered: true,
		},
		{
			ID: ModusTollens, Symbol: "MT", Ruleset: TFLDerived,
			Forms:     []Form{form("¬$a", line("$a → $b"), line("¬$b"))},
			Unordered: true,
		},
		{
			ID: DoubleNegElim, Symbol: "DNE", Ruleset: TFLDerived,
			Forms: []Form{form("$a", line("¬¬$a"))},
		},
		{
			ID: ExcludedMiddle, Symbol: "LEM", Ruleset: TFLDerived,
			Forms:     []Form{form("$b", sub("$a", "$b"), sub("¬$a", "$b"))},
			Unordered: true,
		},
		{
			ID: DeMorgan, Symbol: "DeM", Ruleset: TFLDerived,
			Aliases: []string{"DEM"},
			Forms: []Form{
				form("¬$a ∧ ¬$b", line("¬($a ∨ $b)")),
				form("¬($a ∨ $b)", line("¬$a ∧ ¬$b")),
				form("¬$a ∨ ¬$b", line("¬($a ∧ $b)")),
				form("¬($a ∧ $b)", line("¬$a ∨ ¬$b")),
			},
		},

		// System K.
		{
			ID: NecessityIntro, Symbol: "□I", Ruleset: SystemK,
			Aliases:  []string{"[]I"},
			Forms:    []Form{form("□$a", strict("$a"))},
			Transfer: TransferNecessityIntro,
		},
		{
			ID: NecessityElim, Symbol: "□E", Ruleset: SystemK,
			Aliases:  []string{"[]E"},
			Forms:    []Form{form("$a", line("□$a"))},
			Transfer: TransferNecessityElim,
		},
		{
			ID: PossibilityIntro, Symbol: "◇I", Ruleset: SystemK,
			Aliases:  []string{"<>I", "◊I"},
			Forms:    []Form{form("◇$a", line("$a"))},
			Transfer: TransferPossibilityIntro,
		},
		{
			ID: PossibilityElim, Symbol: "◇E", Ruleset: SystemK,
			Aliases:   []string{"<>E", "◊E"},
			Forms:     []Form{form("◇$b", line("◇$a"), line("□($a → $b)"))},
			Unordered: true,
		},
		{
			ID: PossibilityDef, Symbol: "Def◇", Ruleset: SystemK,
			Aliases: []string{"Def<>", "Def◊"},
			Forms: []Form{
				form("¬□¬$a", line("◇$a")),
				form("◇$a", line("¬□¬$a")),
			},
		},
		{
			ID: ModalConversion, Symbol: "MC", Ruleset: SystemK,
			Forms: []Form{
				form("◇¬$a", line("¬□$a")),
				form("¬□$a", line("◇¬$a")),
				form("□¬$a", line("¬◇$a")),
				form("¬◇$a", line("□¬$a")),
			},
		},

		// Extensions of K.
		{
			ID: ReflexiveT, Symbol: "RT", Ruleset: SystemT,
			Forms:    []Form{form("$a", line("□$a"))},
			Transfer: TransferReflexive,
		},
		{
			ID: Reiteration4, Symbol: "R4", Ruleset: SystemS4,
			Forms:    []Form{form("□$a", line("□$a"))},
			Transfer: Transfer4,
		},
		{
			ID: Reiteration5, Symbol: "R5", Ruleset: SystemS5,
			Forms: []Form{
				form("¬□$a", line("¬□$a")),
				form("◇$a", line("◇$a")),
			},
			Transfer: Transfer5,
		},
	}
}
