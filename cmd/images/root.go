// Package images holds the image listing command.
package images

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/container-tools/podscan/cmd/cmdutils"
	"github.com/container-tools/podscan/internal/podman"
	"github.com/container-tools/podscan/internal/store"
	"github.com/container-tools/podscan/util/common"
)

func GetRootCmd(factory *cmdutils.Factory) *cobra.Command {
	var filterFlag string

	imagesCmd := &cobra.Command{
		Use:   "images",
		Short: "List container images known to the engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := factory.Connection()
			if err != nil {
				return err
			}

			imgs, err := podman.ListImages(cmd.Context(), factory.Executor(), conn, filterFlag)
			if err != nil {
				return err
			}

			if factory.JSON {
				return json.NewEncoder(os.Stdout).Encode(imgs)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSIZE")
			for _, img := range imgs {
				name := "<none>"
				if len(img.Names) > 0 {
					name = strings.Join(img.Names, ", ")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n",
					shortID(store.SanitizeImageID(img.ID)), name, common.GetSize(img.Size))
			}
			return w.Flush()
		},
	}
	imagesCmd.Flags().StringVar(&filterFlag, "filter", "", "Glob pattern matched against image names")

	return imagesCmd
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
