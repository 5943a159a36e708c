// Copyright 2025 Nix ML Journey
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


// Seeder populates a store with a small built-in corpus of public-domain
// book openings, enough to exercise search without a full Gutenberg dump.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	vectorstore "github.com/Nix-ml-journey/vector-store-project"
	"github.com/Nix-ml-journey/vector-store-project/ingestion"
)

var books = []ingestion.BookRow{
	{
		BookNumber: "74",
		Title:      "The Adventures of Tom Sawyer",
		Author:     "Mark Twain",
		Language:   "English",
		Content: "Tom! No answer. Tom! No answer. What's gone with that boy, I wonder? " +
			"You TOM! The old lady pulled her spectacles down and looked over them about the room.",
	},
	{
		BookNumber: "76",
		Title:      "Adventures of Huckleberry Finn",
		Author:     "Mark Twain",
		Language:   "English",
		Content: "You don't know about me without you have read a book by the name of " +
			"The Adventures of Tom Sawyer; but that ain't no matter.",
	},
	{
		BookNumber: "1342",
		Title:      "Pride and Prejudice",
		Author:     "Jane Austen",
		Language:   "English",
		Content: "It is a truth universally acknowledged, that a single man in possession " +
			"of a good fortune, must be in want of a wife.",
	},
	{
		BookNumber: "84",
		Title:      "Frankenstein",
		Author:     "Mary Wollstonecraft Shelley",
		Language:   "English",
		Content: "You will rejoice to hear that no disaster has accompanied the commencement " +
			"of an enterprise which you have regarded with such evil forebodings.",
	},
	{
		BookNumber: "2701",
		Title:      "Moby Dick",
		Author:     "Herman Melville",
		Language:   "English",
		Content: "Call me Ishmael. Some years ago, never mind how long precisely, having " +
			"little or no money in my purse, I thought I would sail about a little and see " +
			"the watery part of the world.",
	},
	{
		BookNumber: "11",
		Title:      "Alice's Adventures in Wonderland",
		Author:     "Lewis Carroll",
		Language:   "English",
		Content: "Alice was beginning to get very tired of sitting by her sister on the bank, " +
			"and of having nothing to do.",
	},
	{
		BookNumber: "345",
		Title:      "Dracula",
		Author:     "Bram Stoker",
		Language:   "English",
		Content: "Left Munich at 8:35 PM, on 1st May, arriving at Vienna early next morning; " +
			"should have arrived at 6:46, but train was an hour late.",
	},
	{
		BookNumber: "2229",
		Title:      "Faust: Der Tragödie erster Teil",
		Author:     "Johann Wolfgang von Goethe",
		Language:   "German",
		Content: "Habe nun, ach! Philosophie, Juristerei und Medizin, und leider auch Theologie " +
			"durchaus studiert, mit heißem Bemühn.",
	},
	{
		BookNumber: "17489",
		Title:      "Les Misérables",
		Author:     "Victor Hugo",
		Language:   "French",
		Content: "En 1815, M. Charles-François-Bienvenu Myriel était évêque de Digne. " +
			"C'était un vieillard d'environ soixante-quinze ans.",
	},
	{
		BookNumber: "2000",
		Title:      "Don Quijote",
		Author:     "Miguel de Cervantes",
		Language:   "Spanish",
		Content: "En un lugar de la Mancha, de cuyo nombre no quiero acordarme, no ha mucho " +
			"tiempo que vivía un hidalgo de los de lanza en astillero.",
	},
	{
		BookNumber: "120",
		Title:      "Treasure Island",
		Author:     "Robert Louis Stevenson",
		Language:   "English",
		Content: "Squire Trelawney, Dr. Livesey, and the rest of these gentlemen having asked " +
			"me to write down the whole particulars about Treasure Island.",
	},
	{
		BookNumber: "1661",
		Title:      "The Adventures of Sherlock Holmes",
		Author:     "Arthur Conan Doyle",
		Language:   "English",
		Content: "To Sherlock Holmes she is always the woman. I have seldom heard him mention " +
			"her under any other name.",
	},
}

var dbPath = flag.String("db", "./books_db", "path to the store directory")

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

func main() {
	store, err := vectorstore.Open(*dbPath)
	if err != nil {
		panic(err)
	}
	defer store.Close()

	pipeline, err := store.NewIngestionPipeline()
	if err != nil {
		panic(err)
	}
	defer pipeline.Release()

	ctx := context.Background()
	if err := pipeline.IngestBooks(ctx, books); err != nil {
		panic(err)
	}

	fmt.Printf("Seeded %d books into %s (%d failed)\n",
		pipeline.Ingested(), *dbPath, pipeline.Failed())
}
