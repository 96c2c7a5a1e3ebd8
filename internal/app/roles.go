package app

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newRolesCmd() *cobra.Command {
	var (
		sort     string
		page     int
		pageSize int
		jsonOut  bool
	)

	cmd := &cobra.Command{
		Use:   "roles",
		Short: "List the hub's galaxy.* roles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if page < 1 {
				page = 1
			}
			params := url.Values{
				"sort":   {sort},
				"offset": {strconv.Itoa((page - 1) * pageSize)},
				"limit":  {strconv.Itoa(pageSize)},
			}
			roles, err := hc.ListRoles(cmd.Context(), params)
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(roles.Results)
			}
			if len(roles.Results) == 0 {
				warn("No roles found.")
				return nil
			}
			header("%-40s %-8s %s", "ROLE", "LOCKED", "PERMISSIONS")
			for _, r := range roles.Results {
				locked := "no"
				if r.Locked {
					locked = "yes"
				}
				fmt.Printf("%-40s %-8s %s\n", r.Name, locked, strings.Join(r.Permissions, ", "))
			}
			fmt.Printf("\n%d roles\n", roles.Count)
			return nil
		},
	}

	cmd.Flags().StringVar(&sort, "sort", "name", "Sort field, prefix - for descending")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "Results per page")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
