// Package ui renders CLI output with [lipgloss] styles.
//
// A shared [Palette] colors titles, success and error lines, warnings and help text.
// [RenderProgress] turns contribution and provisioning updates into single status lines, and
// [PrintProgress] streams them to a writer while a workflow runs. [RenderDashboard],
// [RenderContribution] and [RenderCooldown] format the results the CLI prints.
package ui
