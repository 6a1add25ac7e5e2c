// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/walteh/feedgrab/pkg/log"
)

// rootFlags are shared by every command
type rootFlags struct {
	debug bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "feedgrab",
		Short: "Download feed posts with their text, markup, pictures and video",
		Long: `feedgrab saves feed posts to disk. Each post is written as a text export,
an html export, its full resolution pictures and its preferred quality video,
under a directory chosen by a path template such as ./wbg/$year$month/$author/.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(cmd, flags)
		},
	}

	cmd.PersistentFlags().BoolVarP(&flags.debug, "debug", "d", false, "enable debug logging")

	cmd.AddCommand(
		newDownloadCmd(),
		newVersionCmd(),
	)

	return cmd
}

// setupLogging levels the context logger and attaches a console logger
// writing to the command's output
func setupLogging(cmd *cobra.Command, flags *rootFlags) {
	level := zerolog.InfoLevel
	if flags.debug {
		level = zerolog.DebugLevel
	}

	ctx := cmd.Context()
	logger := zerolog.Ctx(ctx).Level(level)
	ctx = logger.WithContext(ctx)

	console := log.New(cmd.OutOrStdout(), level).WithZerolog(logger)
	cmd.SetContext(log.NewContext(ctx, console))
}
