package session_test

import (
	"bytes"
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/blockfall/internal/blocks"
	"github.com/san-kum/blockfall/internal/config"
	"github.com/san-kum/blockfall/internal/logging"
	"github.com/san-kum/blockfall/internal/session"
)

func newSession(mutate func(*config.Config)) *session.Session {
	cfg := config.DefaultConfig()
	cfg.Rows, cfg.Cols = 5, 5
	cfg.Seed = 17
	cfg.Interval = config.MinInterval
	if mutate != nil {
		mutate(cfg)
	}
	s, err := session.New(cfg, nil)
	Expect(err).NotTo(HaveOccurred())
	return s
}

var _ = Describe("Session", func() {
	var s *session.Session

	BeforeEach(func() {
		s = newSession(nil)
	})

	Describe("New", func() {
		It("builds an empty grid at the configured size", func() {
			Expect(s.Rows()).To(Equal(5))
			Expect(s.Cols()).To(Equal(5))
			Expect(s.Generation()).To(BeZero())
			Expect(s.Census().Empty).To(Equal(25))
			Expect(s.Running()).To(BeFalse())
		})

		It("loads the configured pattern", func() {
			s = newSession(func(c *config.Config) { c.Pattern = "floor" })
			Expect(s.Census().Green).To(Equal(10))
		})

		It("rejects an invalid config", func() {
			cfg := config.DefaultConfig()
			cfg.Rows = 60
			_, err := session.New(cfg, nil)
			Expect(err).To(MatchError(config.ErrSizeOutOfRange))
		})

		It("logs through the given logger", func() {
			var buf bytes.Buffer
			logger, err := logging.New(&buf, "info", "text")
			Expect(err).NotTo(HaveOccurred())

			_, err = session.New(config.DefaultConfig(), logger)
			Expect(err).NotTo(HaveOccurred())
			Expect(buf.String()).To(ContainSubstring("session created"))
		})
	})

	Describe("Toggle", func() {
		It("cycles Empty, Blue, Red, Green and back", func() {
			Expect(s.Toggle(0, 0)).To(Succeed())
			Expect(s.Cell(0, 0)).To(Equal(blocks.Cell{ID: 1, Type: blocks.Blue, Stable: false}))

			for i := 0; i < 3; i++ {
				Expect(s.Toggle(0, 0)).To(Succeed())
			}
			Expect(s.Cell(0, 0)).To(Equal(blocks.Cell{ID: 1, Type: blocks.Empty, Stable: false}))
		})

		It("ignores coordinates outside the grid", func() {
			before := s.Snapshot()
			Expect(s.Toggle(9, 9)).To(Succeed())
			Expect(s.Snapshot()).To(Equal(before))
		})

		It("is refused while running", func() {
			s.Start()
			Expect(s.Toggle(0, 0)).To(MatchError(session.ErrRunning))
			Expect(s.Cell(0, 0).Type).To(Equal(blocks.Empty))
		})
	})

	Describe("Resize", func() {
		It("keeps cells inside the overlap", func() {
			Expect(s.Toggle(1, 1)).To(Succeed())
			Expect(s.Resize(8, 6)).To(Succeed())
			Expect(s.Rows()).To(Equal(8))
			Expect(s.Cols()).To(Equal(6))
			Expect(s.Cell(1, 1)).To(Equal(blocks.Cell{ID: 8, Type: blocks.Blue}))
		})

		It("restarts the history at the new size", func() {
			s.Advance(3, nil)
			Expect(s.Resize(6, 7)).To(Succeed())
			h := s.History()
			Expect(h).To(HaveLen(1))
			Expect(h[0].Total()).To(Equal(42))
			Expect(h[0]).To(Equal(s.Census()))
		})

		DescribeTable("rejects sizes outside [5,50]",
			func(rows, cols int) {
				Expect(s.Resize(rows, cols)).To(MatchError(config.ErrSizeOutOfRange))
				Expect(s.Rows()).To(Equal(5))
				Expect(s.Cols()).To(Equal(5))
			},
			Entry("too few rows", 4, 10),
			Entry("too many cols", 10, 51),
			Entry("zero", 0, 0),
		)

		It("is refused while running", func() {
			s.Start()
			Expect(s.Resize(10, 10)).To(MatchError(session.ErrRunning))
		})
	})

	Describe("SetRules", func() {
		It("applies valid rules and keeps the old ones otherwise", func() {
			r := blocks.DefaultRules()
			r.SpawnCell = 0.9
			Expect(s.SetRules(r)).To(Succeed())
			Expect(s.Rules().SpawnCell).To(Equal(0.9))

			r.Settled = -1
			Expect(s.SetRules(r)).To(MatchError(blocks.ErrProbability))
			Expect(s.Rules().Settled).To(Equal(blocks.DefaultRules().Settled))
		})
	})

	Describe("Start and Stop", func() {
		It("bumps the epoch only on real transitions", func() {
			e := s.Epoch()
			s.Start()
			s.Start()
			Expect(s.Epoch()).To(Equal(e + 1))
			s.Stop()
			s.Stop()
			Expect(s.Epoch()).To(Equal(e + 2))
		})
	})

	Describe("SetInterval", func() {
		It("clamps to the minimum interval", func() {
			Expect(s.SetInterval(10 * time.Millisecond)).To(Equal(config.MinInterval))
			Expect(s.Interval()).To(Equal(config.MinInterval))
		})

		It("restarts the driver when the period changes", func() {
			e := s.Epoch()
			Expect(s.SetInterval(700 * time.Millisecond)).To(Equal(700 * time.Millisecond))
			Expect(s.Epoch()).To(Equal(e + 1))

			s.SetInterval(700 * time.Millisecond)
			Expect(s.Epoch()).To(Equal(e + 1))
		})
	})

	Describe("Step", func() {
		It("advances the generation and records history", func() {
			f := s.Step()
			Expect(f.Generation).To(Equal(1))
			Expect(s.Generation()).To(Equal(1))
			Expect(s.History()).To(HaveLen(2))
			Expect(f.Census.Total()).To(Equal(25))
		})

		It("returns frames that do not alias the live grid", func() {
			f := s.Step()
			live := s.Cell(2, 2)
			f.Grid[2][2].Type = live.Type.Next()
			Expect(s.Cell(2, 2)).To(Equal(live))
		})

		It("caps the history and keeps the newest generations", func() {
			var seen []blocks.Census
			s.Advance(700, func(f session.Frame) { seen = append(seen, f.Census) })
			h := s.History()
			Expect(h).To(HaveLen(600))
			Expect(h).To(Equal(seen[100:]))
		})
	})

	Describe("Clear", func() {
		It("stops the driver and empties the grid", func() {
			Expect(s.LoadPattern("")).To(Succeed())
			s.Advance(3, nil)
			s.Start()

			s.Clear()
			Expect(s.Running()).To(BeFalse())
			Expect(s.Generation()).To(BeZero())
			Expect(s.Census().Empty).To(Equal(25))
			Expect(s.History()).To(HaveLen(1))
		})
	})

	Describe("LoadPattern", func() {
		It("loads the default layout and stops the driver", func() {
			s.Start()
			Expect(s.LoadPattern("")).To(Succeed())
			Expect(s.Running()).To(BeFalse())

			g := s.Snapshot()
			for j := 0; j < 5; j++ {
				Expect(g[0][j].Type).To(Equal(blocks.Green))
				Expect(g[4][j].Type).To(Equal(blocks.Green))
			}
		})

		It("reports unknown layouts", func() {
			Expect(s.LoadPattern("spiral")).To(MatchError(blocks.ErrUnknownPattern))
		})
	})

	Describe("Run", func() {
		It("stops after the requested generations", func() {
			var frames []session.Frame
			err := s.Run(context.Background(), 3, func(f session.Frame) {
				Expect(s.Running()).To(BeTrue())
				frames = append(frames, f)
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(frames).To(HaveLen(3))
			Expect(frames[2].Generation).To(Equal(3))
			Expect(s.Running()).To(BeFalse())
		})

		It("returns the context error when cancelled", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
			defer cancel()

			err := s.Run(ctx, 0, nil)
			Expect(err).To(MatchError(context.DeadlineExceeded))
			Expect(s.Generation()).To(BeNumerically(">=", 1))
			Expect(s.Running()).To(BeFalse())
		})
	})
})
