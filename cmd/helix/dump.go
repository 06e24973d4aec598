package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"helix/internal/fixture"
	"helix/internal/ice"
	"helix/internal/types"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [flags] fixture.toml",
	Short: "Render a fixture's generic environment and substitution map",
	Args:  cobra.ExactArgs(1),
	RunE:  runDump,
}

func runDump(cmd *cobra.Command, args []string) error {
	w, err := fixture.Load(args[0])
	if err != nil {
		return err
	}

	colored := useColor(cmd, os.Stdout)
	heading := color.New(color.FgCyan, color.Bold).SprintFunc()
	arrow := color.New(color.FgGreen).SprintFunc()
	if !colored {
		heading = fmt.Sprint
		arrow = fmt.Sprint
	}

	render := func(id types.TypeID) string {
		return w.Types.String(id, w.Names)
	}

	var dumpErr error
	iceErr := ice.Catch(func() {
		fmt.Fprintln(os.Stdout, heading("generic parameters"))
		for _, p := range w.Signature.GenericParams() {
			fmt.Fprintf(os.Stdout, "  %s %s %s\n", render(p), arrow("=>"), render(w.Env.MapParamIntoContext(p)))
		}

		fmt.Fprintln(os.Stdout, heading("dependent types"))
		allArchetypes := true
		for _, depTy := range w.Signature.AllDependentTypes() {
			ctx := w.Env.MapTypeIntoContext(depTy)
			fmt.Fprintf(os.Stdout, "  %s %s %s\n", render(depTy), arrow("=>"), render(ctx))
			allArchetypes = allArchetypes && w.Types.Kind(ctx) == types.KindArchetype
		}
		if !allArchetypes {
			// Concrete bindings have no archetypes to key a map by.
			return
		}

		list := w.Subs
		if !w.HasSubs {
			list = w.Env.ForwardingSubstitutions()
			fmt.Fprintln(os.Stdout, heading("substitution map (forwarding)"))
		} else {
			fmt.Fprintln(os.Stdout, heading("substitution map"))
		}

		m, err := w.Env.SubstitutionMapFor(list)
		if err != nil {
			dumpErr = err
			return
		}
		for _, depTy := range w.Signature.AllDependentTypes() {
			arch := w.Env.MapTypeIntoContext(depTy)
			replacement, _ := m.Replacement(arch)
			fmt.Fprintf(os.Stdout, "  %s %s %s\n", render(arch), arrow("=>"), render(replacement))
			for _, ref := range m.Conformances(arch) {
				if info, ok := w.Types.ProtocolInfo(ref.Protocol); ok {
					fmt.Fprintf(os.Stdout, "    : %s\n", w.Names.MustLookup(info.Name))
				}
			}
			for _, edge := range m.Parents(arch) {
				fmt.Fprintf(os.Stdout, "    via %s.%s\n", render(edge.Parent), w.Names.MustLookup(edge.Assoc))
			}
		}
	})
	if iceErr != nil {
		return fmt.Errorf("fixture breaks an environment invariant: %w", iceErr)
	}
	return dumpErr
}
