package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli"

	"github.com/andreyvit/databook"
)

func listTrees(c *cli.Context, e *env) error {
	names, err := e.shelf.Names()
	if err != nil {
		return err
	}
	long := c.Bool("long")
	for _, name := range names {
		if !long {
			fmt.Fprintln(e.out, name)
			continue
		}
		n, err := e.shelf.Get(name)
		if err != nil {
			return err
		}
		raw, err := databook.MarshalNode(n)
		if err != nil {
			return err
		}
		fmt.Fprintf(e.out, "%s\t%d fields\t%d bytes\n", name, n.Len(), len(raw))
	}
	return nil
}

func dumpTree(c *cli.Context, e *env) error {
	if c.Bool("all") {
		out, err := e.shelf.Dump(databook.DumpAll)
		if err != nil {
			return err
		}
		fmt.Fprint(e.out, out)
		return nil
	}
	name, err := arg(c, 0, "NAME")
	if err != nil {
		return err
	}
	n, err := e.shelf.Get(name)
	if err != nil {
		return err
	}
	fmt.Fprintln(e.out, n.Dump())
	return nil
}

func showStats(c *cli.Context, e *env) error {
	out, err := e.shelf.Dump(databook.DumpHeader | databook.DumpStats)
	if err != nil {
		return err
	}
	fmt.Fprint(e.out, out)
	return nil
}

func exportTree(c *cli.Context, e *env) error {
	name, err := arg(c, 0, "NAME")
	if err != nil {
		return err
	}
	file, err := arg(c, 1, "FILE")
	if err != nil {
		return err
	}
	n, err := e.shelf.Get(name)
	if err != nil {
		return err
	}
	raw, err := databook.MarshalNode(n)
	if err != nil {
		return err
	}
	if file == "-" {
		_, err = e.out.Write(raw)
		return err
	}
	if err := os.WriteFile(file, raw, 0o644); err != nil {
		return err
	}
	e.logger.Info().Str("tree", name).Str("file", file).Int("size", len(raw)).Msg("exported")
	return nil
}

func importTree(c *cli.Context, e *env) error {
	name, err := arg(c, 0, "NAME")
	if err != nil {
		return err
	}
	file, err := arg(c, 1, "FILE")
	if err != nil {
		return err
	}
	var raw []byte
	if file == "-" {
		raw, err = io.ReadAll(e.in)
	} else {
		raw, err = os.ReadFile(file)
	}
	if err != nil {
		return err
	}
	n, err := databook.UnmarshalNode(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}
	if err := e.shelf.Put(name, n); err != nil {
		return err
	}
	e.logger.Info().Str("tree", name).Int("fields", n.Len()).Msg("imported")
	return nil
}

func removeTree(c *cli.Context, e *env) error {
	name, err := arg(c, 0, "NAME")
	if err != nil {
		return err
	}
	if err := e.shelf.Delete(name); err != nil {
		return err
	}
	e.logger.Info().Str("tree", name).Msg("removed")
	return nil
}

func arg(c *cli.Context, i int, what string) (string, error) {
	if c.NArg() <= i {
		return "", fmt.Errorf("%s: missing %s argument", c.Command.Name, what)
	}
	return c.Args().Get(i), nil
}
