// Licensed to the Apache Software Foundation (ASF) under one or more
// contributor license agreements.  See the NOTICE file distributed with
// this work for additional information regarding copyright ownership.
// The ASF licenses this file to You under the Apache License, Version 2.0
// (the "License"); you may not use this file except in compliance with
// the License.  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// pairs reads "value,number" lines, shuffles them as Avro encoded records and
// writes one summary line per distinct value.
package main

import (
	"context"
	"flag"

	"github.com/apache/beam/sdks/v2/go/pkg/beam"
	"github.com/apache/beam/sdks/v2/go/pkg/beam/io/textio"
	"github.com/apache/beam/sdks/v2/go/pkg/beam/log"
	"github.com/apache/beam/sdks/v2/go/pkg/beam/x/beamx"
	"github.com/erikogenvik/beam-avrocoder/examples/pairs"
)

var (
	input  = flag.String("input", "", "File(s) to read.")
	output = flag.String("output", "", "Output file (required).")
)

func main() {
	flag.Parse()
	pairs.Register()
	beam.Init()

	ctx := context.Background()
	if *input == "" || *output == "" {
		log.Exit(ctx, "Both --input and --output are required")
	}

	p := beam.NewPipeline()
	s := p.Root()

	lines := textio.Read(s, *input)
	summaries := pairs.Summarize(s, pairs.ParsePairs(s, lines))
	textio.Write(s, *output, beam.ParDo(s, pairs.FormatSummary, summaries))

	if err := beamx.Run(ctx, p); err != nil {
		log.Exitf(ctx, "Failed to execute job: %v", err)
	}
}
