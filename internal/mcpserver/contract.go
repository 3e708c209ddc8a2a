package mcpserver

// ProofFormatContract describes the proof file format that LLM consumers
// should follow when writing proofs for the checker.
const ProofFormatContract = `# Fitch Proof Format Contract

Every proof file stored in the vault follows this structure.

## Structure

` + "```" + `markdown
---
title: Distribution of box            # OPTIONAL – display name, defaults to file name
format: "1.0"                         # OPTIONAL – format version, 1.x accepted
system: K                             # OPTIONAL – none, K, T, S4 or S5
rulesets: [tfl-basic, tfl-derived]    # OPTIONAL – rule families to enable
conclusion: □Q                        # OPTIONAL – sentence the proof must reach
---

Prose about the proof in Markdown.

` + "```" + `proof
□(P → Q) ; PR
□P ; PR
| □ ; PR
| P → Q ; □E 1
| P ; □E 2
| Q ; →E 4, 5
□Q ; □I 3-6
` + "```" + `
` + "```" + `

## Rules

1. **One line per step.** Each line is ` + "`" + `SENTENCE ; JUSTIFICATION` + "`" + `. Split happens on the
   first semicolon.
2. **Depth** is given by leading ` + "`" + `|` + "`" + ` bars. A line one bar deeper than the previous
   line opens a subproof and must be justified ` + "`" + `PR` + "`" + `.
3. **Justifications** name a rule followed by citations: line numbers (` + "`" + `3` + "`" + `) or
   subproof ranges (` + "`" + `3-6` + "`" + `), separated by commas, semicolons or spaces.
4. **Modal subproofs** open with the lone sentence ` + "`" + `□` + "`" + `. Lines inside may only use
   what the system's reiteration rules carry in (` + "`" + `□E` + "`" + `, ` + "`" + `RT` + "`" + `, ` + "`" + `R4` + "`" + `, ` + "`" + `R5` + "`" + `).
5. **Connectives** may be written in Unicode (¬ ∧ ∨ → ↔ □ ◇ ⊥) or ASCII
   (~ & v -> <-> [] <> XX).
6. **Placeholders** (` + "`" + `?` + "`" + `) mark unfinished steps. They validate but the proof is not
   complete until none remain.
7. **File paths** end with ` + "`" + `.md` + "`" + ` and use forward slashes.

Call ` + "`" + `list_rules` + "`" + ` for the rule catalog and ` + "`" + `check_proof` + "`" + ` to verify a draft before saving it.
`
