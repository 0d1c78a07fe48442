package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/tidwall/sjson"

	"github.com/dshills/evan/internal/event/path"
	"github.com/dshills/evan/internal/scenario"
)

func newPathsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "paths <scenario> <event> <root>",
		Short: "List the subscribed paths a broadcast from root would reach",
		Long: `Paths wires the subscriptions of a scenario without running its steps
and prints every path under root holding a subscription for event, in
the order a broadcast visits them. The root itself is included when it
holds a subscription.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := path.Parse(args[2])
			if err != nil {
				return err
			}

			sc, err := scenario.Load(args[0])
			if err != nil {
				return err
			}
			session, err := a.runner().Prepare(sc)
			if err != nil {
				return err
			}
			defer session.Close()

			paths := session.Space().PathsUnder(args[1], root)
			out := cmd.OutOrStdout()

			if a.cfg.Output.Format == "json" {
				doc, _ := sjson.SetRawBytes([]byte(`{}`), "paths", []byte(`[]`))
				doc, _ = sjson.SetBytes(doc, "event", args[1])
				doc, _ = sjson.SetBytes(doc, "root", root.String())
				for i, p := range paths {
					if doc, err = sjson.SetBytes(doc, "paths."+strconv.Itoa(i), p.String()); err != nil {
						return err
					}
				}
				return a.newPrinter(out).writeJSON(doc)
			}

			for _, p := range paths {
				if _, err := fmt.Fprintln(out, p.String()); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
