// Command copy-in streams a native file's bytes into an ext2edit image,
// per spec.md §6.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/tshlabs/ext2edit"
	"github.com/tshlabs/ext2edit/editor"
	"github.com/tshlabs/ext2edit/image"
)

func main() {
	app := &cli.App{
		Name:      "copy-in",
		Usage:     "copy a native file into an image",
		ArgsUsage: "<image> <native-path> <image-path>",
		Action:    run,
	}

	if err := app.Run(os.Args); err != nil {
		driverErr := ext2edit.ToDriverError(err)
		fmt.Fprintln(os.Stderr, driverErr.Error())
		os.Exit(driverErr.ExitCode())
	}
}

func run(c *cli.Context) error {
	if c.NArg() != 3 {
		return cli.Exit("usage: copy-in <image> <native-path> <image-path>", 1)
	}
	imagePath := c.Args().Get(0)
	nativePath := c.Args().Get(1)
	destPath := c.Args().Get(2)

	sess, err := image.Open(imagePath)
	if err != nil {
		return err
	}
	defer sess.Close()

	return editor.CopyIn(sess, nativePath, destPath)
}
