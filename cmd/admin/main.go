// Command admin provides management utilities for groups, users and the page cache.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"quill/internal/cache"
	"quill/internal/config"
	"quill/internal/database"
	"quill/internal/models"
	"quill/internal/repository"
	"quill/internal/service"

	"gorm.io/gorm"
)

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  admin group create <slug> <title> [description]  - Create a group")
	fmt.Println("  admin group delete <slug>                        - Delete a group, keeping its posts")
	fmt.Println("  admin group list                                 - List groups")
	fmt.Println("  admin user delete <username>                     - Delete a user and their content")
	fmt.Println("  admin cache flush                                - Drop every cached listing page")
}

func main() {
	if len(os.Args) < 3 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()
	args := os.Args[3:]

	switch os.Args[1] + " " + os.Args[2] {
	case "group create":
		err = createGroup(ctx, db, args)
	case "group delete":
		err = deleteGroup(ctx, db, args)
	case "group list":
		err = listGroups(ctx, db)
	case "user delete":
		err = deleteUser(ctx, db, cfg, args)
	case "cache flush":
		err = flushCache(ctx, cfg)
	default:
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && len(appErr.Fields) > 0 {
			for field, msgs := range appErr.Fields {
				fmt.Printf("%s: %s\n", field, strings.Join(msgs, "; "))
			}
			os.Exit(1)
		}
		log.Fatal(err)
	}
}

func createGroup(ctx context.Context, db *gorm.DB, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: admin group create <slug> <title> [description]")
	}
	in := service.CreateGroupInput{Slug: args[0], Title: args[1]}
	if len(args) > 2 {
		in.Description = strings.Join(args[2:], " ")
	}

	group, err := service.NewGroupService(repository.NewGroupRepository(db)).CreateGroup(ctx, in)
	if err != nil {
		return err
	}
	fmt.Printf("Created group %q (ID: %d)\n", group.Slug, group.ID)
	return nil
}

func deleteGroup(ctx context.Context, db *gorm.DB, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: admin group delete <slug>")
	}
	if err := service.NewGroupService(repository.NewGroupRepository(db)).DeleteGroup(ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted group %q\n", args[0])
	return nil
}

func listGroups(ctx context.Context, db *gorm.DB) error {
	groups, err := service.NewGroupService(repository.NewGroupRepository(db)).ListGroups(ctx)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		fmt.Println("No groups found")
		return nil
	}
	for _, g := range groups {
		fmt.Printf("ID: %d | Slug: %s | Title: %s\n", g.ID, g.Slug, g.Title)
	}
	return nil
}

func deleteUser(ctx context.Context, db *gorm.DB, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: admin user delete <username>")
	}
	users := service.NewUserService(
		repository.NewUserRepository(db),
		repository.NewPostRepository(db),
		repository.NewFollowRepository(db),
		cfg.PerPage,
	)
	if err := users.DeleteUser(ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted user %q with their posts, comments and follows\n", args[0])
	return nil
}

func flushCache(ctx context.Context, cfg *config.Config) error {
	cache.InitRedis(cfg.RedisURL)
	rdb := cache.GetClient()
	if rdb == nil {
		return errors.New("redis is unreachable; in-process caches expire on their own")
	}
	defer rdb.Close()

	if err := cache.NewPageCache(rdb, cfg.PageCacheTTL()).Invalidate(ctx); err != nil {
		return fmt.Errorf("flush page cache: %w", err)
	}
	fmt.Println("Page cache flushed")
	return nil
}
