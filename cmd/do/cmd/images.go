package cmd

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"
	"github.com/templui/gallery/internal/config"
	"github.com/templui/gallery/internal/db"
	"github.com/templui/gallery/internal/model"
	"github.com/templui/gallery/internal/repository"
	"github.com/templui/gallery/internal/storage"
)

func ImagesCmd() *cobra.Command {
	var limit int

	imagesCmd := &cobra.Command{
		Use:   "images",
		Short: "List gallery records, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImages(cmd.Context(), limit)
		},
	}
	imagesCmd.Flags().IntVarP(&limit, "limit", "n", 50, "maximum number of records to show (0 for all)")

	return imagesCmd
}

func OrphansCmd() *cobra.Command {
	var prefix string

	orphansCmd := &cobra.Command{
		Use:   "orphans",
		Short: "Report stored objects that have no gallery record",
		Long:  "Report stored objects that have no gallery record. Nothing is deleted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrphans(cmd.Context(), prefix)
		},
	}
	orphansCmd.Flags().StringVar(&prefix, "prefix", "", "only inspect keys under this prefix")

	return orphansCmd
}

func runImages(ctx context.Context, limit int) error {
	cfg := config.Load()

	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return err
	}
	defer db.Close(database)

	images, err := repository.NewImageRepository(database).List(ctx)
	if err != nil {
		return err
	}
	if len(images) == 0 {
		fmt.Println(styleMuted.Render("no images"))
		return nil
	}

	total := len(images)
	if limit > 0 && len(images) > limit {
		images = images[:limit]
	}

	fmt.Println(renderTable([]string{"Created", "Owner", "Key", "URL"}, imageRows(images)))
	fmt.Println(styleMuted.Render(fmt.Sprintf("%d of %d images", len(images), total)))
	return nil
}

func imageRows(images []*model.Image) [][]string {
	rows := make([][]string, 0, len(images))
	for _, img := range images {
		owner := "anonymous"
		if img.Owned() {
			owner = *img.UserID
		}
		rows = append(rows, []string{
			img.CreatedAt.Local().Format(time.DateTime),
			owner,
			img.StorageKey,
			img.URL,
		})
	}
	return rows
}

func runOrphans(ctx context.Context, prefix string) error {
	cfg := config.Load()

	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return err
	}
	defer db.Close(database)

	objects, err := storage.New(cfg)
	if err != nil {
		return err
	}

	keys, err := objects.Keys(ctx, prefix)
	if err != nil {
		return err
	}

	known, err := repository.NewImageRepository(database).Keys(ctx)
	if err != nil {
		return err
	}

	orphans := findOrphans(keys, known)
	if len(orphans) == 0 {
		fmt.Println(styleMuted.Render(fmt.Sprintf("no orphans among %d objects", len(keys))))
		return nil
	}

	rows := make([][]string, 0, len(orphans))
	for _, key := range orphans {
		rows = append(rows, []string{key, objects.PublicURL(key)})
	}
	fmt.Println(renderTable([]string{"Key", "URL"}, rows))
	fmt.Println(styleWarning.Render(fmt.Sprintf("%d of %d objects have no record", len(orphans), len(keys))))
	return nil
}

// findOrphans returns the sorted keys missing from known. An object whose
// record insert failed after a successful store ends up here.
func findOrphans(keys []string, known map[string]bool) []string {
	var orphans []string
	for _, key := range keys {
		if !known[key] {
			orphans = append(orphans, key)
		}
	}
	slices.Sort(orphans)
	return orphans
}
