package main

import (
	"fmt"
	"net/url"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newSetMenuPhotoCmd(withStore storeRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "set-menu-photo [url]",
		Short: "Set the photo shown above bot menus; without a URL the photo is removed",
		Args:  cobra.MaximumNArgs(1),
		RunE: withStore(func(cmd *cobra.Command, args []string, s *store) error {
			var photo string
			if len(args) == 1 {
				photo = args[0]
				u, err := url.Parse(photo)
				if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
					return errors.Errorf("invalid photo url %q", photo)
				}
			}

			if err := s.settings.SetMenuPhoto(cmd.Context(), photo); err != nil {
				return err
			}
			if photo == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "🖼️ Фото меню удалено")
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "🖼️ Фото меню: %s\n", photo)
			}
			return nil
		}),
	}
}
