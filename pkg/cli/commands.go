package cli

import (
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/khalid-nowaf/netblockr/pkg/netblock"
)

// TableFlags select and load the netblock table.
type TableFlags struct {
	Netblocks      string `arg:"" type:"existingfile" help:"Netblock file in CSV, TSV, JSON or YAML format"`
	NetblockKey    string `help:"Column holding the netblock label" default:"netblock" env:"NETBLOCKR_NETBLOCK_KEY"`
	BaseKey        string `help:"Column holding the base address" default:"base" env:"NETBLOCKR_BASE_KEY"`
	MaskKey        string `help:"Column holding the mask length" default:"mask" env:"NETBLOCKR_MASK_KEY"`
	DescriptionKey string `help:"Column holding the description" default:"description" env:"NETBLOCKR_DESCRIPTION_KEY"`
	Masks          []int  `help:"Mask lengths to probe, in order. Defaults to every mask in use, longest first" sep:"," env:"NETBLOCKR_MASKS"`
	Strict         bool   `help:"Fail on the first malformed netblock instead of skipping it"`
}

// OutputFlags select where and how results are written.
type OutputFlags struct {
	Format string `help:"Output format (table, csv, tsv, json)" enum:"table,csv,tsv,json" default:"table" env:"NETBLOCKR_FORMAT"`
	Output string `help:"Write results to this file instead of stdout" short:"o" type:"path"`
}

// loadTable reads the netblock file, builds the table and sets its probe order.
func (flags *TableFlags) loadTable(logger *slog.Logger) (*netblock.Table, error) {
	entries, err := ReadNetblocks(flags.Netblocks, Columns{
		NetBlock:    flags.NetblockKey,
		Base:        flags.BaseKey,
		Mask:        flags.MaskKey,
		Description: flags.DescriptionKey,
	}, logger)
	if err != nil {
		return nil, err
	}

	opts := []netblock.Option{netblock.WithLogger(logger)}
	if flags.Strict {
		opts = append(opts, netblock.WithStrict())
	}

	table, report, err := netblock.Build(entries, opts...)
	if err != nil {
		return nil, err
	}
	logger.Info("Netblock table built",
		slog.String("file", flags.Netblocks),
		slog.Int("accepted", report.Accepted),
		slog.Int("skipped", report.Skipped()),
		slog.Int("shadowed", len(report.Shadowed)))

	masks := flags.Masks
	if len(masks) == 0 {
		masks = table.UsedMasks()
	}
	if err := table.SetProbeOrder(masks...); err != nil {
		return nil, err
	}
	logger.Debug("Probe order set", slog.Any("masks", masks))

	return table, nil
}

// write sends rows to --output, or to stdout.
func (flags *OutputFlags) write(stdout io.Writer, header []string, rows []Rower) error {
	writer, err := NewWriter(flags.Format)
	if err != nil {
		return err
	}

	if flags.Output == "" {
		return writer.Write(stdout, header, rows)
	}

	file, err := os.Create(flags.Output)
	if err != nil {
		return err
	}
	if err := writer.Write(file, header, rows); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

type DumpCmd struct {
	TableFlags
	OutputFlags
}

// Run executes the dump command.
func (cmd *DumpCmd) Run(ctx *Context) error {
	table, err := cmd.loadTable(ctx.Logger)
	if err != nil {
		return err
	}
	return cmd.write(ctx.Stdout, netblock.DumpColumns, asRows(table.Dump()))
}

type LookupCmd struct {
	TableFlags
	OutputFlags
	Addrs        []string `arg:"" optional:"" name:"address" help:"IPv4 addresses to classify"`
	AddressFile  string   `help:"File with one address per line" name:"addresses" type:"existingfile"`
	Workers      int      `help:"Lookup goroutines, 0 uses every CPU" default:"0" env:"NETBLOCKR_WORKERS"`
	OnlyNotFound bool     `help:"Write only the addresses no netblock matched"`
}

// Run executes the lookup command.
func (cmd *LookupCmd) Run(ctx *Context) error {
	addrs := cmd.Addrs
	if cmd.AddressFile != "" {
		fromFile, err := ReadAddresses(cmd.AddressFile)
		if err != nil {
			return err
		}
		addrs = append(addrs, fromFile...)
	}
	if len(addrs) == 0 {
		return errors.New("no addresses to look up: pass them as arguments or with --addresses")
	}

	table, err := cmd.loadTable(ctx.Logger)
	if err != nil {
		return err
	}

	results, err := table.LookupParallel(ctx.Ctx, addrs, cmd.Workers)
	if err != nil {
		return err
	}

	found := 0
	for _, result := range results {
		if result.Found {
			found++
		}
	}
	ctx.Logger.Info("Lookup complete", slog.Int("addresses", len(results)), slog.Int("found", found))

	if cmd.OnlyNotFound {
		missed := results[:0]
		for _, result := range results {
			if !result.Found {
				missed = append(missed, result)
			}
		}
		results = missed
	}
	return cmd.write(ctx.Stdout, netblock.LookupColumns, asRows(results))
}

type AuditCmd struct {
	TableFlags
	OutputFlags
}

// Run executes the audit command.
func (cmd *AuditCmd) Run(ctx *Context) error {
	table, err := cmd.loadTable(ctx.Logger)
	if err != nil {
		return err
	}

	findings := table.Audit()
	if len(findings) == 0 {
		ctx.Logger.Info("No findings: every netblock is reachable and the probe order is most specific first")
	}
	return cmd.write(ctx.Stdout, netblock.AuditColumns, asRows(findings))
}
