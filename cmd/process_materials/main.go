package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/yungbote/studypath/internal/app"
	"github.com/yungbote/studypath/internal/domain/study"
	"github.com/yungbote/studypath/internal/services"
)

type fileList []string

func (l *fileList) String() string { return strings.Join(*l, ",") }
func (l *fileList) Set(v string) error {
	v = strings.TrimSpace(v)
	if v != "" {
		*l = append(*l, v)
	}
	return nil
}

func main() {
	var slides, papers fileList
	var name string
	var keep bool
	flag.Var(&slides, "slide", "path to a slide deck or notes file (repeatable)")
	flag.Var(&papers, "paper", "path to a past paper (repeatable)")
	flag.StringVar(&name, "name", "", "study name")
	flag.BoolVar(&keep, "keep", false, "keep the study in the configured store")
	flag.Parse()

	for _, arg := range flag.Args() {
		_ = slides.Set(arg)
	}
	if len(slides)+len(papers) == 0 {
		fmt.Println("usage: process_materials [-name N] [-paper FILE]... FILE...")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx)
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	svc := application.Services.Study
	st, err := svc.CreateStudy(ctx, name)
	if err != nil {
		fmt.Printf("create study: %v\n", err)
		os.Exit(1)
	}
	if !keep {
		defer func() {
			if err := svc.DeleteStudy(context.Background(), st.ID); err != nil {
				application.Log.Warn("cleanup study", "study_id", st.ID, "error", err)
			}
		}()
	}

	add := func(paths []string, kind study.FileKind) error {
		for _, p := range paths {
			data, err := os.ReadFile(p)
			if err != nil {
				return fmt.Errorf("read %s: %w", p, err)
			}
			in := services.UploadInput{FileName: filepath.Base(p), Kind: kind, Data: data}
			if _, err := svc.AddUpload(ctx, st.ID, in); err != nil {
				return fmt.Errorf("upload %s: %w", p, err)
			}
		}
		return nil
	}
	if err := add(slides, study.FileKindSlide); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := add(papers, study.FileKindPastPaper); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	res, err := svc.ProcessMaterials(ctx, st.ID)
	if err != nil {
		fmt.Printf("process materials: %v\n", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		fmt.Printf("encode result: %v\n", err)
		os.Exit(1)
	}
}
