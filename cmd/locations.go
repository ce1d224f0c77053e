package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/internal/geo"
	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/pkg/output"
)

var locationsFormat string

var locationsCmd = &cobra.Command{
	Use:   "locations",
	Short: "List the location catalog",
	Long:  "Display every location sessions can originate from, with its timezone and address ranges",
	RunE:  runLocations,
}

func init() {
	rootCmd.AddCommand(locationsCmd)

	locationsCmd.Flags().StringVar(&locationsFormat, "output-format", "table", "output format: table, json, yaml")
}

type locationView struct {
	Name     string   `json:"name" yaml:"name"`
	Country  string   `json:"country_iso_code" yaml:"country_iso_code"`
	Lat      float64  `json:"lat" yaml:"lat"`
	Lon      float64  `json:"lon" yaml:"lon"`
	Timezone string   `json:"timezone" yaml:"timezone"`
	CIDRs    []string `json:"cidrs" yaml:"cidrs"`
}

func runLocations(cmd *cobra.Command, args []string) error {
	catalog := geo.Catalog()
	views := make([]locationView, 0, len(catalog))
	for _, l := range catalog {
		views = append(views, locationView{
			Name:     l.Name,
			Country:  l.CountryCode,
			Lat:      l.Lat,
			Lon:      l.Lon,
			Timezone: l.Timezone,
			CIDRs:    l.CIDRStrings(),
		})
	}

	printer := newPrinter(cmd)
	switch locationsFormat {
	case "json":
		return printer.JSON(views)
	case "yaml":
		return printer.YAML(views)
	case "table", "":
		table := output.NewTable([]string{"NAME", "COUNTRY", "LAT", "LON", "TIMEZONE", "CIDRS"})
		for _, v := range views {
			table.AddRow([]string{
				v.Name,
				v.Country,
				strconv.FormatFloat(v.Lat, 'f', 4, 64),
				strconv.FormatFloat(v.Lon, 'f', 4, 64),
				v.Timezone,
				strings.Join(v.CIDRs, ", "),
			})
		}
		table.RenderTo(cmd.OutOrStdout())
		return nil
	default:
		return fmt.Errorf("unknown output format %q", locationsFormat)
	}
}
